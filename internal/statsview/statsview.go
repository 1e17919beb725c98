//go:build statsview

package statsview

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/retroenv/retrogolib/log"
)

// Launch starts the stats server listening on address in a new goroutine.
func Launch(logger *log.Logger, address string) error {
	viewer.SetConfiguration(viewer.WithAddr(address))
	mgr := statsview.New()
	go mgr.Start()

	logger.Info("Stats server started", log.String("url", "http://"+address+Path))
	return nil
}

// Available returns whether the stats server can be launched.
func Available() bool {
	return true
}
