package main

import "github.com/ssz-lang/sszc/pkg/cmd"

func main() {
	cmd.Execute()
}
