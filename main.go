package main

import "github.com/GokhanOfficial/CaloriX/cmd/calorix"

func main() {
	calorix.Execute()
}
