package dto

import "github.com/yukikurage/task-dashboard/internal/listview"

// ViewResponse is the state of a dashboard session's task view
type ViewResponse struct {
	ViewID  string         `json:"view_id"`
	Version uint64         `json:"version"`
	View    listview.View  `json:"view"`
	Modal   listview.Modal `json:"modal"`
}

// PageChangeResponse reports whether a page change was applied
type PageChangeResponse struct {
	Applied bool `json:"applied"`
	ViewResponse
}

// SearchAcceptedResponse acknowledges a debounced search
type SearchAcceptedResponse struct {
	ViewID  string `json:"view_id"`
	Term    string `json:"term"`
	Pending bool   `json:"pending"`
}

// ToViewResponse converts a controller snapshot to ViewResponse
func ToViewResponse(viewID string, snap listview.Snapshot) ViewResponse {
	return ViewResponse{
		ViewID:  viewID,
		Version: snap.Version,
		View:    snap.View,
		Modal:   snap.Modal,
	}
}
