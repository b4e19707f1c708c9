package domain

type Issuer struct {
	Address    Address
	Registered bool
	Funded     bool
	Votes      int
}
