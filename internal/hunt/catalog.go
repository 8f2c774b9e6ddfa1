package hunt

import "errors"

// ErrUnknownLocation is returned for keys outside the catalog.
var ErrUnknownLocation = errors.New("unknown location")

// Catalog is the read-only table of hunt locations. Order is the
// definition order and is stable across calls.
type Catalog struct {
	locations []Location
	byKey     map[string]int
	byToken   map[string]int
}

// NewCatalog builds a catalog from the given locations.
func NewCatalog(locations []Location) *Catalog {
	c := &Catalog{
		locations: locations,
		byKey:     make(map[string]int, len(locations)),
		byToken:   make(map[string]int, len(locations)),
	}
	for i, l := range locations {
		c.byKey[l.Key] = i
		if l.ScanToken != "" {
			c.byToken[l.ScanToken] = i
		}
	}
	return c
}

// All returns the locations in definition order. Callers must not
// mutate the returned slice.
func (c *Catalog) All() []Location {
	return c.locations
}

// Len returns the number of locations in the catalog.
func (c *Catalog) Len() int {
	return len(c.locations)
}

// Get looks up a location by key.
func (c *Catalog) Get(key string) (Location, error) {
	i, ok := c.byKey[key]
	if !ok {
		return Location{}, ErrUnknownLocation
	}
	return c.locations[i], nil
}

// ByScanToken looks up the location whose QR code decodes to payload.
func (c *Catalog) ByScanToken(payload string) (Location, error) {
	i, ok := c.byToken[payload]
	if !ok {
		return Location{}, ErrUnknownLocation
	}
	return c.locations[i], nil
}

// RasnovCatalog returns the eight discoverable locations of the Rasnov
// scavenger hunt.
func RasnovCatalog() *Catalog {
	return NewCatalog([]Location{
		{
			Key: "fortress", Lat: 45.5889, Lng: 25.4631,
			Name:      "Rasnov Fortress Gate",
			ScanToken: "RASNOV_FORTRESS",
			Fact:      "The fortress was built in 1215 by Teutonic Knights to protect against Mongol invasions.",
			Hint:      "Next, discover the legendary source of water that saved the fortress during sieges - the Ancient Well!",
		},
		{
			Key: "well", Lat: 45.5892, Lng: 25.4635,
			Name:      "Ancient Well",
			ScanToken: "RASNOV_WELL",
			Fact:      "This 143-meter deep well was dug by Turkish prisoners and took 17 years to complete.",
			Hint:      "Now climb high to the Watch Tower where guards kept lookout for approaching enemies!",
		},
		{
			Key: "tower", Lat: 45.5885, Lng: 25.4640,
			Name:      "Watch Tower",
			ScanToken: "RASNOV_TOWER",
			Fact:      "The watch tower provided 360-degree views to spot approaching enemies from miles away.",
			Hint:      "Seek the Old Church where villagers found sanctuary and spiritual guidance for centuries!",
		},
		{
			Key: "church", Lat: 45.5890, Lng: 25.4638,
			Name:      "Old Church",
			ScanToken: "RASNOV_CHURCH",
			Fact:      "This Gothic church dates back to the 14th century and still holds services today.",
			Hint:      "Journey to the Village Museum to explore authentic Romanian traditions and artifacts!",
		},
		{
			Key: "museum", Lat: 45.5850, Lng: 25.4600,
			Name:      "Village Museum",
			ScanToken: "RASNOV_MUSEUM",
			Fact:      "The museum houses over 300 artifacts showcasing traditional Romanian village life.",
			Hint:      "Adventure awaits at the Mountain Peak - breathtaking views from 1650m elevation!",
		},
		{
			Key: "peak", Lat: 45.5700, Lng: 25.4500,
			Name:      "Mountain Peak",
			ScanToken: "RASNOV_PEAK",
			Fact:      "At 1650m elevation, this peak offers views of the entire Barsa region on clear days.",
			Hint:      "Head down to the historic Town Square where markets and festivals have thrived for 600 years!",
		},
		{
			Key: "square", Lat: 45.5880, Lng: 25.4620,
			Name:      "Town Square",
			ScanToken: "RASNOV_SQUARE",
			Fact:      "The town square has been a gathering place for markets and festivals for over 600 years.",
			Hint:      "One more adventure awaits - visit the amazing Dino Park with life-size dinosaur replicas!",
		},
		{
			Key: "dino", Lat: 45.5895, Lng: 25.4625,
			Name:      "Dino Park Entrance",
			NameRO:    "Intrarea Dino Parc",
			ScanToken: "RASNOV_DINO",
			Fact:      "Dino Park features over 100 life-size dinosaur replicas in their natural habitat settings.",
			FactRO:    "Dino Parc are peste 100 de replici de dinozauri la scară naturală în habitat similar.",
			Hint:      "Congratulations! You've completed the entire Rasnov scavenger hunt!",
			HintRO:    "Felicitări! Ai terminat întreaga vânătoare în Râșnov!",
		},
	})
}
