/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/cloudrecord/cmd/cloudrecord/cmd"

func main() {
	cmd.Execute()
}
