package main

import "github.com/rivetbio/rivet/cmd"

func main() {
	cmd.Execute()
}
