package main

import "github.com/user/pricepulse-web/cmd/pricepulse/cmd"

func main() {
	cmd.Execute()
}
