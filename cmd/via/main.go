// Package main is the entry point for the via command.
package main

func main() {
	Execute()
}
