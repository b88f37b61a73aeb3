package geo

// seedEntry is one row of the compiled-in zip reference table.
type seedEntry struct {
	Lat   float64
	Lng   float64
	City  string
	State string
}

// seedExact maps full postal codes to centroids. These are the markets the
// platform actively serves; everything else falls through to the prefix table.
var seedExact = map[string]seedEntry{
	"00501": {40.8154, -73.0451, "Holtsville", "NY"},
	"73301": {30.2672, -97.7431, "Austin", "TX"},
	"75201": {32.7876, -96.7994, "Dallas", "TX"},
	"76101": {32.7555, -97.3308, "Fort Worth", "TX"},
	"77001": {29.7604, -95.3698, "Houston", "TX"},
	"78201": {29.4686, -98.5253, "San Antonio", "TX"},
	"78701": {30.2711, -97.7437, "Austin", "TX"},
	"79901": {31.7587, -106.4869, "El Paso", "TX"},
	"85001": {33.4484, -112.0740, "Phoenix", "AZ"},
	"85701": {32.2226, -110.9747, "Tucson", "AZ"},
	"87101": {35.0844, -106.6504, "Albuquerque", "NM"},
	"89101": {36.1716, -115.1391, "Las Vegas", "NV"},
	"90001": {33.9731, -118.2479, "Los Angeles", "CA"},
	"92101": {32.7157, -117.1611, "San Diego", "CA"},
	"94102": {37.7793, -122.4193, "San Francisco", "CA"},
	"95814": {38.5816, -121.4944, "Sacramento", "CA"},
	"80201": {39.7392, -104.9903, "Denver", "CO"},
	"84101": {40.7608, -111.8910, "Salt Lake City", "UT"},
	"32801": {28.5384, -81.3789, "Orlando", "FL"},
	"33101": {25.7617, -80.1918, "Miami", "FL"},
	"30301": {33.7490, -84.3880, "Atlanta", "GA"},
	"27601": {35.7796, -78.6382, "Raleigh", "NC"},
	"37201": {36.1627, -86.7816, "Nashville", "TN"},
	"73101": {35.4676, -97.5164, "Oklahoma City", "OK"},
	"64101": {39.0997, -94.5786, "Kansas City", "MO"},
}

// seedPrefix maps 3-digit zip prefixes to regional centroids. A prefix match
// yields an approximated coordinate good enough for proximity scoring.
var seedPrefix = map[string]seedEntry{
	"750": {32.9, -96.6, "Dallas Metro", "TX"},
	"751": {32.6, -96.6, "Dallas Metro", "TX"},
	"752": {32.8, -96.8, "Dallas", "TX"},
	"760": {32.8, -97.3, "Fort Worth Metro", "TX"},
	"761": {32.7, -97.3, "Fort Worth", "TX"},
	"770": {29.8, -95.4, "Houston Metro", "TX"},
	"772": {29.7, -95.4, "Houston", "TX"},
	"773": {30.1, -95.5, "Houston North", "TX"},
	"774": {29.6, -95.8, "Houston Southwest", "TX"},
	"775": {29.5, -95.1, "Houston Southeast", "TX"},
	"782": {29.5, -98.5, "San Antonio Metro", "TX"},
	"786": {30.4, -97.7, "Austin Metro", "TX"},
	"787": {30.3, -97.7, "Austin", "TX"},
	"788": {29.9, -98.1, "Texas Hill Country", "TX"},
	"790": {35.2, -101.8, "Amarillo", "TX"},
	"794": {33.6, -101.9, "Lubbock", "TX"},
	"797": {32.0, -102.1, "Midland", "TX"},
	"799": {31.8, -106.4, "El Paso", "TX"},
	"850": {33.4, -112.1, "Phoenix Metro", "AZ"},
	"852": {33.5, -111.9, "Scottsdale", "AZ"},
	"853": {33.4, -112.4, "Phoenix West", "AZ"},
	"857": {32.2, -110.9, "Tucson", "AZ"},
	"871": {35.1, -106.6, "Albuquerque", "NM"},
	"875": {35.7, -105.9, "Santa Fe", "NM"},
	"891": {36.2, -115.1, "Las Vegas", "NV"},
	"895": {39.5, -119.8, "Reno", "NV"},
	"900": {34.1, -118.3, "Los Angeles", "CA"},
	"902": {33.9, -118.3, "Los Angeles South", "CA"},
	"906": {33.8, -118.1, "Long Beach", "CA"},
	"917": {34.0, -117.9, "San Gabriel Valley", "CA"},
	"921": {32.8, -117.1, "San Diego", "CA"},
	"926": {33.6, -117.8, "Orange County", "CA"},
	"941": {37.8, -122.4, "San Francisco", "CA"},
	"945": {37.8, -122.2, "Oakland", "CA"},
	"950": {37.3, -121.9, "San Jose", "CA"},
	"958": {38.6, -121.5, "Sacramento", "CA"},
	"802": {39.7, -105.0, "Denver", "CO"},
	"803": {40.0, -105.2, "Boulder", "CO"},
	"809": {38.8, -104.8, "Colorado Springs", "CO"},
	"841": {40.8, -111.9, "Salt Lake City", "UT"},
	"328": {28.5, -81.4, "Orlando", "FL"},
	"331": {25.8, -80.2, "Miami", "FL"},
	"336": {27.9, -82.5, "Tampa", "FL"},
	"303": {33.7, -84.4, "Atlanta", "GA"},
	"276": {35.8, -78.6, "Raleigh", "NC"},
	"282": {35.2, -80.8, "Charlotte", "NC"},
	"372": {36.2, -86.8, "Nashville", "TN"},
	"731": {35.5, -97.5, "Oklahoma City", "OK"},
	"741": {36.2, -95.9, "Tulsa", "OK"},
	"641": {39.1, -94.6, "Kansas City", "MO"},
}

func lookupSeed(postalCode string) (seedEntry, bool, bool) {
	if e, ok := seedExact[postalCode]; ok {
		return e, true, true
	}
	if e, ok := seedPrefix[postalCode[:3]]; ok {
		return e, true, false
	}
	return seedEntry{}, false, false
}
