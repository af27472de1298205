package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

func main() {
	var parser = flags.NewParser(nil, flags.Default)

	parser.AddCommand("api", docApi, docApiLong, &optsAPI{})
	parser.AddCommand("worker", docWorker, docWorkerLong, &optsWorker{})
	parser.AddCommand("migrate", docMigrate, docMigrate, &optsMigrate{})
	parser.AddCommand("run", docRun, docRunLong, &optsRun{})

	vms, err := parser.AddCommand("vms", docVMs, docVMs, &struct{}{})
	if err != nil {
		panic(err)
	}
	vms.AddCommand("add", docVMsAdd, docVMsAdd, &optsVMsAdd{})
	vms.AddCommand("list", docVMsList, docVMsListLong, &optsVMsList{})

	if _, err := parser.Parse(); err != nil {
		switch flagsErr := err.(type) {
		case *flags.Error:
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
			os.Exit(1)
		default:
			os.Exit(1)
		}
	}
}
