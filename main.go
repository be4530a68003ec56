package main

import (
	"PalmFM/cmd"
)

func main() {
	cmd.Execute()
}
