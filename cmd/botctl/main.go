package main

import (
	"github.com/Paintersrp/botctl/internal/cli"
	"github.com/Paintersrp/botctl/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
