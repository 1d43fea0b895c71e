package address

// Address is a store customer address, read-only from this service.
type Address struct {
	ID         int64
	CustomerID int64

	FirstName string
	LastName  string

	Phone       string
	PhoneMobile string

	Address1 string
	City     string
	Postal   string

	CountryISO string
}

// Mobile returns the mobile number, falling back to the landline.
func (a *Address) Mobile() string {
	if a.PhoneMobile != "" {
		return a.PhoneMobile
	}
	return a.Phone
}
