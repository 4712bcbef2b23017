package main

import "sensor-collector/cmd"

func main() {
	cmd.Execute()
}
