package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

// CommandClassifier runs an external detector on a frame. The command gets
// the frame path as its last argument and prints a JSON array of
// {"class","confidence"} objects.
type CommandClassifier struct {
	argv []string
	run  Runner
}

func NewCommandClassifier(argv []string) *CommandClassifier {
	return &CommandClassifier{argv: argv, run: execRunner}
}

func (c *CommandClassifier) Classify(ctx context.Context, frame string) ([]entities.Detection, error) {
	if len(c.argv) == 0 {
		return nil, nil
	}
	args := append(append([]string{}, c.argv[1:]...), frame)
	out, err := c.run(ctx, c.argv[0], args...)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", frame, err)
	}
	var dets []entities.Detection
	if err := json.Unmarshal(out, &dets); err != nil {
		return nil, fmt.Errorf("classifier output: %w", err)
	}
	return dets, nil
}

// BestAnimal picks the most confident wildlife detection and returns its
// label capitalised ("Bear"). Without one the result is FalsePositive with
// zero confidence.
func BestAnimal(dets []entities.Detection) (string, float64) {
	label, conf := entities.FalsePositive, 0.0
	for _, d := range dets {
		if entities.IsAnimal(d.Class) && d.Confidence > conf {
			label, conf = capitalize(d.Class), d.Confidence
		}
	}
	return label, conf
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
