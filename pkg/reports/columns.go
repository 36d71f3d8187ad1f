package reports

// Admin-tool rescue export columns.
const (
	ColRescueID      = "Rescue ID"
	ColPickupDay     = "Day of Pickup Start"
	ColRescueState   = "Rescue State"
	ColDescription   = "Description"
	ColFoodType      = "Food Type"
	ColWeight        = "Weight"
	ColDetailURL     = "Rescue Detail URL"
	ColDonorName     = "Donor Name"
	ColDonorLocation = "Donor Location Name"
	ColRecipientName = "Recipient Name"
	ColRecipientLoc  = "Recipient Location Name"
	ColVolunteerName = "Volunteer Name"
	ColComments      = "Comments"
	ColStatus        = "Status"
)

// Account export columns.
const (
	colDonorOrg     = "Donor name"
	colRecipientOrg = "Recipient name"
	colLocationName = "Location name"
	colLine1        = "Line1"
	colLine2        = "Line2"
	statusActive    = "Active"
)

// Admin account shape consumed by the account reconciler.
const (
	AccountParentName = "Parent Name"
	AccountName       = "Name"
	AccountPhone      = "Phone"
	AccountLine1      = "Line1"
	AccountLine2      = "Line2"
	AccountCity       = "ShippingCity"
	AccountState      = "ShippingState"
	AccountPostalCode = "ShippingPostalCode"
)

// AccountColumns is the admin account shape in order.
var AccountColumns = []string{
	AccountParentName, AccountName, AccountPhone, AccountLine1, AccountLine2,
	AccountCity, AccountState, AccountPostalCode,
}

// VolunteerColumns is the admin volunteer shape in order. Line2 is Null
// when the export has no such column.
var VolunteerColumns = []string{"Name", "Email", "Phone", "Line1", "Line2", "City", "State", "Zip"}
