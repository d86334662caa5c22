package main

import "hotel-rates-scraper/cli"

func main() {
	cli.Execute()
}
