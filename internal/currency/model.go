package currency

// Currency is a store currency.
type Currency struct {
	ID      int64
	ISOCode string
	Name    string
}
