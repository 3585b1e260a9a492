package main

import "github.com/khanhnv2901/sitecheck/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
