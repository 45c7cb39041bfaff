package core

import (
	"fmt"
	"strings"
)

// Facility is the syslog source classification code
type Facility int

const (
	FacilityKern   Facility = 0
	FacilityUser   Facility = 1
	FacilityMail   Facility = 2
	FacilityDaemon Facility = 3
	FacilityAuth   Facility = 4
	FacilitySyslog Facility = 5
	FacilityLocal0 Facility = 16
	FacilityLocal1 Facility = 17
	FacilityLocal2 Facility = 18
	FacilityLocal3 Facility = 19
	FacilityLocal4 Facility = 20
	FacilityLocal5 Facility = 21
	FacilityLocal6 Facility = 22
	FacilityLocal7 Facility = 23
)

var facilityNames = map[Facility]string{
	FacilityKern:   "kern",
	FacilityUser:   "user",
	FacilityMail:   "mail",
	FacilityDaemon: "daemon",
	FacilityAuth:   "auth",
	FacilitySyslog: "syslog",
	FacilityLocal0: "local0",
	FacilityLocal1: "local1",
	FacilityLocal2: "local2",
	FacilityLocal3: "local3",
	FacilityLocal4: "local4",
	FacilityLocal5: "local5",
	FacilityLocal6: "local6",
	FacilityLocal7: "local7",
}

// String returns the conventional syslog name of the facility
func (f Facility) String() string {
	if name, ok := facilityNames[f]; ok {
		return name
	}
	return fmt.Sprintf("facility(%d)", int(f))
}

// Priority combines the facility with a severity into a syslog PRI value
func (f Facility) Priority(s Severity) int {
	return int(f)<<3 | s.Code()
}

// ParseFacility converts a syslog facility name to a Facility
func ParseFacility(name string) (Facility, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range facilityNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown facility %q", name)
}
