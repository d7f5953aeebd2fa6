package control

import (
	"github.com/rmaran/assetflow/internal/engine"
)

const (
	MethodStatus       = "status"
	MethodStatistics   = "statistics"
	MethodReport       = "report"
	MethodFolderAdd    = "folder/add"
	MethodFolderRemove = "folder/remove"
	MethodBatchImport  = "import/batch"
	MethodStatsReset   = "statistics/reset"
	MethodShutdown     = "shutdown"
)

type StatusResult struct {
	Running       bool            `json:"running"`
	ActiveWatches int             `json:"active_watches"`
	Statistics    engine.Snapshot `json:"statistics"`
}

type FolderParams struct {
	Path     string `json:"path"`
	Category string `json:"category,omitempty"`
}

type FolderResult struct {
	Changed bool `json:"changed"`
}

type BatchParams struct {
	Paths       []string `json:"paths"`
	Destination string   `json:"destination"`
	Category    string   `json:"category"`
}

type ReportParams struct {
	OutputPath string `json:"output_path,omitempty"`
}

type ReportResult struct {
	Report string `json:"report"`
}
