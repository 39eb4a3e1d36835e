package domain

const (
	AmenityYes = "Yes"
	AmenityNo  = "No"
)

// Amenities is the fixed vocabulary of yes/no listing features. Form fields,
// query filters and the price predictor all key off these names.
var Amenities = []string{
	"Resale",
	"MaintenanceStaff",
	"Gymnasium",
	"SwimmingPool",
	"LandscapedGardens",
	"JoggingTrack",
	"RainWaterHarvesting",
	"IndoorGames",
	"ShoppingMall",
	"Intercom",
	"SportsFacility",
	"ATM",
	"ClubHouse",
	"School",
	"24X7Security",
	"PowerBackup",
	"CarParking",
	"StaffQuarter",
	"Cafeteria",
	"MultipurposeRoom",
	"Hospital",
	"WashingMachine",
	"Gasconnection",
	"AC",
	"Wifi",
	"Childrensplayarea",
	"LiftAvailable",
	"BED",
	"VaastuCompliant",
	"Microwave",
	"GolfCourse",
	"TV",
	"DiningTable",
	"Sofa",
	"Wardrobe",
	"Refrigerator",
}

var amenitySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Amenities))
	for _, name := range Amenities {
		set[name] = struct{}{}
	}
	return set
}()

// IsAmenity reports whether name belongs to the amenity vocabulary.
func IsAmenity(name string) bool {
	_, ok := amenitySet[name]
	return ok
}
