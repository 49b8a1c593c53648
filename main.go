package main

import "github.com/meysamhadeli/codesnap/cmd"

func main() {
	cmd.Execute()
}
