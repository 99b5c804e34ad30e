// Package domain contém as estruturas do integrador de boletins do SIMA
package domain

import "time"

// ScanState é o estado persistido da varredura de páginas
type ScanState struct {
	LastFoundID int    `json:"last_found_id"`
	LastRun     string `json:"last_run,omitempty"`
}

// PageResult é o resultado da raspagem de uma única página de cotação.
// Files conta as planilhas encontradas; Downloaded só as efetivamente
// baixadas nesta varredura (arquivos já em disco não entram).
type PageResult struct {
	ID         int
	URL        string
	Date       *time.Time
	Files      int
	Downloaded int
}

// ScanResult resume uma varredura completa
type ScanResult struct {
	StartID         int      `json:"start_id"`
	HighestFoundID  int      `json:"highest_found_id"`
	PagesChecked    int      `json:"pages_checked"`
	FilesDownloaded int      `json:"files_downloaded"`
	NewLinks        []string `json:"-"`
}
