package entities

import "time"

// FalsePositive is the classification stored when no animal was found in a capture.
const FalsePositive = "False Positive"

// AnimalClasses are the detector labels treated as wildlife.
var AnimalClasses = []string{
	"bird", "cat", "dog", "horse", "sheep",
	"cow", "elephant", "bear", "zebra", "giraffe",
}

// IsAnimal reports whether label is one of AnimalClasses.
func IsAnimal(label string) bool {
	for _, a := range AnimalClasses {
		if a == label {
			return true
		}
	}
	return false
}

// Detection is one labelled object found in a frame.
type Detection struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// Capture is a recorded and classified trigger, one row of the capture log.
type Capture struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Classification string    `json:"classification"`
	Confidence     float64   `json:"confidence"`
	VideoPath      string    `json:"video_path"`
	FramePath      string    `json:"frame_path,omitempty"`
	Temperature    float64   `json:"temp"`
	Humidity       float64   `json:"humidity"`
	Battery        int       `json:"battery"`
	LightState     int       `json:"light_state"`
}

// IsAnimal reports whether the capture was classified as wildlife.
func (c Capture) IsAnimal() bool {
	return c.Classification != "" && c.Classification != FalsePositive
}
