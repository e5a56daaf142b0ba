package catalog

import (
	"fmt"
	"time"
)

// Server is one entry of the public bandwidth-test server catalog. The core
// engine only ever consumes Host; everything else is for selection and
// display.
type Server struct {
	Lat      string `json:"lat" xml:"lat,attr"`
	Lon      string `json:"lon" xml:"lon,attr"`
	Distance int    `json:"distance" xml:"-"`
	Name     string `json:"name" xml:"name,attr"`
	Country  string `json:"country" xml:"country,attr"`
	CC       string `json:"cc" xml:"cc,attr"`
	Sponsor  string `json:"sponsor" xml:"sponsor,attr"`
	ID       string `json:"id" xml:"id,attr"`
	Host     string `json:"host" xml:"host,attr"`

	// Latency is filled in by Best; it is not part of the catalog.
	Latency time.Duration `json:"-" xml:"-"`
}

func (s Server) String() string {
	return fmt.Sprintf("[id: %5s] %4dKm [%s, %s]\t%s", s.ID, s.Distance, s.Name, s.CC, s.Sponsor)
}

// Verbose returns the long display form with coordinates and host.
func (s Server) Verbose() string {
	return fmt.Sprintf("[id: %5s] %4dKm (lat: %s°, lon: %s°) %s, %s, %s: %s",
		s.ID, s.Distance, s.Lat, s.Lon, s.Name, s.Country, s.Sponsor, s.Host)
}

// ByID finds a server by its catalog id.
func ByID(servers []Server, id string) (Server, error) {
	for _, s := range servers {
		if s.ID == id {
			return s, nil
		}
	}
	return Server{}, fmt.Errorf("can't find server with id %s", id)
}
