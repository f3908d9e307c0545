package main

import "github.com/billbatista/acasinha-splitter/cmd"

func main() {
	cmd.Execute()
}
