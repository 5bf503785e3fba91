package main

import "InspectorCharts/pkg/cmd"

func main() {
	cmd.Execute()
}
