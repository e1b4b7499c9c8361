package main

import "github.com/kattn/djgenetics/internal/cmd"

func main() {
	cmd.Execute()
}
