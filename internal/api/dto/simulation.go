package dto

type StartSimulationRequest struct {
	Origin    *Coordinates `json:"origin"`
	Consumers []Consumer   `json:"consumers"`
}

type SimulationStatusResponse struct {
	Status        string     `json:"status"`
	ElapsedMs     int64      `json:"elapsed_ms"`
	RosterVersion uint64     `json:"roster_version"`
	Consumers     []Consumer `json:"consumers"`
}
