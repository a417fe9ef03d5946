package domain

// InfoKey is one of the detailIntro fields this service understands.
// Which keys are present depends on the content type.
type InfoKey string

const (
	// tourist spot (12)
	InfoUseTime         InfoKey = "usetime"
	InfoRestDate        InfoKey = "restdate"
	InfoInfoCenter      InfoKey = "infocenter"
	InfoParking         InfoKey = "parking"
	InfoPet             InfoKey = "chkpet"
	InfoBabyCarriage    InfoKey = "chkbabycarriage"
	InfoCreditCard      InfoKey = "chkcreditcard"
	InfoExperienceGuide InfoKey = "expguide"
	InfoAccomCount      InfoKey = "accomcount"
	InfoOpenDate        InfoKey = "opendate"

	// culture (14)
	InfoUseTimeCulture    InfoKey = "usetimeculture"
	InfoRestDateCulture   InfoKey = "restdateculture"
	InfoInfoCenterCulture InfoKey = "infocenterculture"
	InfoParkingCulture    InfoKey = "parkingculture"
	InfoPetCulture        InfoKey = "chkpetculture"
	InfoUseFee            InfoKey = "usefee"

	// festival (15)
	InfoEventStartDate InfoKey = "eventstartdate"
	InfoEventEndDate   InfoKey = "eventenddate"
	InfoEventPlace     InfoKey = "eventplace"
	InfoPlayTime       InfoKey = "playtime"
	InfoSponsor        InfoKey = "sponsor1"
	InfoSponsorTel     InfoKey = "sponsor1tel"
	InfoUseTimeFest    InfoKey = "usetimefestival"

	// course (25)
	InfoDistance  InfoKey = "distance"
	InfoTakeTime  InfoKey = "taketime"
	InfoInfoCtour InfoKey = "infocentertourcourse"

	// leports (28)
	InfoUseTimeLeports    InfoKey = "usetimeleports"
	InfoRestDateLeports   InfoKey = "restdateleports"
	InfoInfoCenterLeports InfoKey = "infocenterleports"
	InfoParkingLeports    InfoKey = "parkingleports"
	InfoPetLeports        InfoKey = "chkpetleports"

	// lodging (32)
	InfoCheckIn          InfoKey = "checkintime"
	InfoCheckOut         InfoKey = "checkouttime"
	InfoInfoCenterLodge  InfoKey = "infocenterlodging"
	InfoParkingLodging   InfoKey = "parkinglodging"
	InfoRoomCount        InfoKey = "roomcount"
	InfoReservationLodge InfoKey = "reservationlodging"

	// shopping (38)
	InfoOpenTime         InfoKey = "opentime"
	InfoRestDateShopping InfoKey = "restdateshopping"
	InfoInfoCenterShop   InfoKey = "infocentershopping"
	InfoParkingShopping  InfoKey = "parkingshopping"
	InfoPetShopping      InfoKey = "chkpetshopping"

	// restaurant (39)
	InfoOpenTimeFood   InfoKey = "opentimefood"
	InfoRestDateFood   InfoKey = "restdatefood"
	InfoInfoCenterFood InfoKey = "infocenterfood"
	InfoParkingFood    InfoKey = "parkingfood"
	InfoFirstMenu      InfoKey = "firstmenu"
	InfoTreatMenu      InfoKey = "treatmenu"
	InfoPacking        InfoKey = "packing"
)

var knownInfoKeys = map[InfoKey]struct{}{}

func init() {
	for _, k := range []InfoKey{
		InfoUseTime, InfoRestDate, InfoInfoCenter, InfoParking, InfoPet, InfoBabyCarriage,
		InfoCreditCard, InfoExperienceGuide, InfoAccomCount, InfoOpenDate,
		InfoUseTimeCulture, InfoRestDateCulture, InfoInfoCenterCulture, InfoParkingCulture,
		InfoPetCulture, InfoUseFee,
		InfoEventStartDate, InfoEventEndDate, InfoEventPlace, InfoPlayTime, InfoSponsor,
		InfoSponsorTel, InfoUseTimeFest,
		InfoDistance, InfoTakeTime, InfoInfoCtour,
		InfoUseTimeLeports, InfoRestDateLeports, InfoInfoCenterLeports, InfoParkingLeports,
		InfoPetLeports,
		InfoCheckIn, InfoCheckOut, InfoInfoCenterLodge, InfoParkingLodging, InfoRoomCount,
		InfoReservationLodge,
		InfoOpenTime, InfoRestDateShopping, InfoInfoCenterShop, InfoParkingShopping, InfoPetShopping,
		InfoOpenTimeFood, InfoRestDateFood, InfoInfoCenterFood, InfoParkingFood, InfoFirstMenu,
		InfoTreatMenu, InfoPacking,
	} {
		knownInfoKeys[k] = struct{}{}
	}
}

// IsKnownInfoKey reports whether name is part of the closed key set.
func IsKnownInfoKey(name string) bool {
	_, ok := knownInfoKeys[InfoKey(name)]
	return ok
}

// OperatingInfo is the sparse detailIntro record. Known holds recognised keys,
// Extra holds everything else the provider sent. Empty values are never stored.
type OperatingInfo struct {
	ContentID     string             `json:"contentId"`
	ContentTypeID string             `json:"contentTypeId"`
	Known         map[InfoKey]string `json:"known"`
	Extra         map[string]string  `json:"extra,omitempty"`
}

// Set stores a value under the known map or the extras side channel.
func (o *OperatingInfo) Set(name, value string) {
	if value == "" {
		return
	}
	if IsKnownInfoKey(name) {
		if o.Known == nil {
			o.Known = make(map[InfoKey]string)
		}
		o.Known[InfoKey(name)] = value
		return
	}
	if o.Extra == nil {
		o.Extra = make(map[string]string)
	}
	o.Extra[name] = value
}

func (o *OperatingInfo) Get(k InfoKey) (string, bool) {
	if o == nil || o.Known == nil {
		return "", false
	}
	v, ok := o.Known[k]
	return v, ok
}

func (o *OperatingInfo) first(keys ...InfoKey) (string, bool) {
	for _, k := range keys {
		if v, ok := o.Get(k); ok {
			return v, true
		}
	}
	return "", false
}

// Hours returns the opening hours whichever content type supplied them.
func (o *OperatingInfo) Hours() (string, bool) {
	return o.first(InfoUseTime, InfoUseTimeCulture, InfoUseTimeLeports, InfoOpenTime,
		InfoOpenTimeFood, InfoPlayTime, InfoUseTimeFest, InfoCheckIn)
}

func (o *OperatingInfo) Closed() (string, bool) {
	return o.first(InfoRestDate, InfoRestDateCulture, InfoRestDateLeports, InfoRestDateShopping,
		InfoRestDateFood)
}

func (o *OperatingInfo) Contact() (string, bool) {
	return o.first(InfoInfoCenter, InfoInfoCenterCulture, InfoInfoCenterLeports,
		InfoInfoCenterLodge, InfoInfoCenterShop, InfoInfoCenterFood, InfoInfoCtour, InfoSponsorTel)
}

func (o *OperatingInfo) Parking() (string, bool) {
	return o.first(InfoParking, InfoParkingCulture, InfoParkingLeports, InfoParkingLodging,
		InfoParkingShopping, InfoParkingFood)
}

// PetPolicy is absent for several content types.
func (o *OperatingInfo) PetPolicy() (string, bool) {
	return o.first(InfoPet, InfoPetCulture, InfoPetLeports, InfoPetShopping)
}
