package identity

// Identity is the already-resolved caller passed into every operation that
// needs it. The core never authenticates; the request layer fills this in
// from its trusted headers.
type Identity struct {
	CustomerID string
	IsAdmin    bool
}

// Owns reports whether the caller may see or operate on a resource owned
// by the given customer.
func (i Identity) Owns(customerID string) bool {
	if i.IsAdmin {
		return true
	}
	return i.CustomerID == customerID
}
