package main

import (
	"jecna-client/cmd/jecna/commands"
	"jecna-client/pkg/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
