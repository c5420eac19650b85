package main

import "github.com/grisp/otpbuild/cmd/otpbuild/internal"

func main() {
	internal.Execute()
}
