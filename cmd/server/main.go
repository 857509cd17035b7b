package main

import "shop-service/internal/cli"

func main() {
	cli.Execute()
}
