package detect

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/fakeyudi/cropguard/internal/api"
)

// DefaultDemoDelay is how long DemoPredictor pretends to think.
const DefaultDemoDelay = 2500 * time.Millisecond

var demoResults = []api.Prediction{
	{
		CropName:    "Tomato",
		DiseaseName: "Late Blight",
		Confidence:  94,
		Status:      api.StatusDiseased,
		Severity:    "High",
		Description: "Late blight is a devastating disease that affects tomato plants, causing dark lesions on leaves and stems. It spreads rapidly in humid conditions and can destroy entire crops if left untreated.",
		OrganicTreatment: []string{
			"Remove and destroy infected plant parts immediately",
			"Ensure proper plant spacing for air circulation",
			"Avoid overhead watering to reduce leaf wetness",
		},
		ChemicalTreatment: []string{"Apply copper-based fungicides every 7-10 days"},
		Prevention:        []string{"Use disease-resistant tomato varieties in future plantings"},
	},
	{
		CropName:    "Cucumber",
		DiseaseName: "Powdery Mildew",
		Confidence:  89,
		Status:      api.StatusDiseased,
		Severity:    "Medium",
		Description: "Powdery mildew appears as white, powdery spots on leaves and stems. It thrives in warm, dry conditions with high humidity and can reduce crop yield significantly.",
		OrganicTreatment: []string{
			"Remove heavily infected leaves",
			"Apply neem oil spray as a natural alternative",
		},
		ChemicalTreatment: []string{"Apply sulfur or potassium bicarbonate fungicides"},
		Prevention: []string{
			"Improve air circulation around plants",
			"Water plants at the base, not from above",
		},
	},
	{
		CropName:    "Wheat",
		DiseaseName: "Leaf Rust",
		Confidence:  91,
		Status:      api.StatusDiseased,
		Severity:    "Medium",
		Description: "Leaf rust causes orange-brown pustules on wheat leaves, reducing photosynthesis and grain quality. It spreads through wind-borne spores.",
		OrganicTreatment: []string{
			"Remove volunteer wheat plants that harbor spores",
			"Practice crop rotation",
		},
		ChemicalTreatment: []string{"Apply triazole fungicides at early infection stages"},
		Prevention: []string{
			"Use rust-resistant wheat varieties",
			"Monitor fields regularly for early detection",
		},
	},
	{
		CropName:    "Rice",
		DiseaseName: "Healthy",
		Confidence:  97,
		Status:      api.StatusHealthy,
		Severity:    "None",
		Description: "The plant appears healthy with no visible signs of disease. Continue regular monitoring and maintain good agricultural practices.",
		Prevention: []string{
			"Continue regular monitoring for any changes",
			"Maintain proper irrigation and drainage",
			"Apply balanced fertilizers as per soil test",
			"Practice preventive pest management",
			"Ensure proper plant spacing",
		},
	},
}

// DemoResults returns a copy of the built-in sample results.
func DemoResults() []api.Prediction {
	out := make([]api.Prediction, len(demoResults))
	copy(out, demoResults)
	return out
}

// DemoPredictor returns a random built-in result after Delay without
// contacting the backend.
type DemoPredictor struct {
	Delay time.Duration
	// Pick chooses an index in [0, n). Defaults to a uniform random pick.
	Pick func(n int) int
}

func (d DemoPredictor) Predict(ctx context.Context, up api.Upload) (*api.Prediction, error) {
	if up.Body != nil {
		if _, err := io.Copy(io.Discard, up.Body); err != nil {
			return nil, err
		}
	}

	if d.Delay > 0 {
		timer := time.NewTimer(d.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	pick := d.Pick
	if pick == nil {
		pick = rand.Intn
	}
	res := demoResults[pick(len(demoResults))]
	res.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return &res, nil
}
