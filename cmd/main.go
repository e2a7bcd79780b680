package main

import (
	cmd "github.com/kerbaras/yomu/cmd/yomu"
)

func main() {
	cmd.Execute()
}
