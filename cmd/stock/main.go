/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/stockdb/cmd/stock/cmd"

func main() {
	cmd.Execute()
}
