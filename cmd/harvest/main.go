package main

import (
	"plugin-harvester/cmd/harvest/commands"
	"plugin-harvester/lib/util/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
