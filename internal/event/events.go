package event

type Type string

const (
	OfferedEvent        Type = "Offered"
	BoughtEvent         Type = "Bought"
	TransferEvent       Type = "Transfer"
	ApprovalForAllEvent Type = "ApprovalForAll"
)
