package domain

// Mode tells whether the route was fixed by a scanned QR code.
type Mode string

const (
	ModeBrowse     Mode = "browse"
	ModeFixedRoute Mode = "fixed_route"
)

// EntryParams are the query parameters a booking page is opened with.
type EntryParams struct {
	RouteID     string `json:"routeId" form:"routeId"`
	CurrentStop string `json:"currentStop" form:"currentStop"`
}

// Mode derives the operating mode from the entry parameters.
func (p EntryParams) Mode() Mode {
	if p.RouteID != "" {
		return ModeFixedRoute
	}
	return ModeBrowse
}
