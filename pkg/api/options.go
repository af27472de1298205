package api

import (
	"time"

	"github.com/voidshard/drguard/pkg/structs"
)

const (
	defStorage       = "local"
	defMaxJobRuntime = 1 * time.Hour
	defRequeueAfter  = 10 * time.Minute
	defTidyFrequency = 2 * time.Minute
	defTidyBatchSize = 500
)

// OptionsClientDefault runs a drguard service that runs no background routines.
// This is intended either for;
// - processes serving the HTTP API
// - one off commands (ie. running a single job by hand)
func OptionsClientDefault() *structs.Options {
	return &structs.Options{
		DefaultStorage: defStorage,
		ListStorage:    defStorage,
		MaxJobRuntime:  defMaxJobRuntime,
		RequeueAfter:   defRequeueAfter,
		TidyFrequency:  defTidyFrequency,
		TidyBatchSize:  defTidyBatchSize,
	}
}

// OptionsServerDefault runs a drguard service that also runs the tidy routines,
// reclaiming jobs whose worker died & resubmitting jobs the queue lost.
func OptionsServerDefault() *structs.Options {
	opts := OptionsClientDefault()
	opts.TidyRoutines = 1
	return opts
}
