package main

import "greeting/cmd/greeting/root"

func main() {
	root.Execute()
}
