package classifier

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/paleolab/fossilscan/internal/fossil"
)

// Heuristic classifies specimens from pixel statistics: mean brightness
// selects the type bucket, color variance grades preservation, and Sobel
// edge density separates low-relief trace fossils from body fossils.
type Heuristic struct {
	EdgeThreshold        float64 // gradient magnitude threshold
	MineralizationStdDev float64 // per-channel std dev above which mineralization is assumed
}

// NewHeuristic creates the built-in statistics classifier with default
// sensitivity.
func NewHeuristic() *Heuristic {
	return &Heuristic{
		EdgeThreshold:        30.0,
		MineralizationStdDev: 50.0,
	}
}

// period and age bucket per fossil type
var typeProfiles = map[fossil.Type]struct {
	period string
	age    fossil.AgeRange
}{
	fossil.PermineralizedBone: {"Mesozoic", fossil.AgeRange{Low: 66, High: 252}},
	fossil.PetrifiedWood:      {"Paleozoic", fossil.AgeRange{Low: 252, High: 541}},
	fossil.ShellFragment:      {"Cenozoic", fossil.AgeRange{Low: 0, High: 66}},
	fossil.TraceFossil:        {"Permian", fossil.AgeRange{Low: 252, High: 299}},
	fossil.AmberInclusion:     {"Paleogene", fossil.AgeRange{Low: 23, High: 66}},
}

func (h *Heuristic) Classify(ctx context.Context, img image.Image) (Observation, error) {
	if err := ctx.Err(); err != nil {
		return Observation{}, err
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return Observation{}, fmt.Errorf("%w: empty image", ErrClassification)
	}

	st := measure(img, h.EdgeThreshold)

	// Amber reads bright and strongly warm; trace fossils are mid-tone
	// matrix with almost no relief. Everything else falls through to the
	// brightness ladder.
	var t fossil.Type
	switch {
	case st.warmth > 0.25 && st.brightness > 120:
		t = fossil.AmberInclusion
	case st.edgeDensity < 0.02 && st.brightness >= 100 && st.brightness < 180:
		t = fossil.TraceFossil
	case st.brightness < 100:
		t = fossil.PermineralizedBone
	case st.brightness < 150:
		t = fossil.PetrifiedWood
	default:
		t = fossil.ShellFragment
	}
	profile := typeProfiles[t]

	// High texture and visible mineralization both back the type call up.
	confidence := clamp01(0.5 + st.texture/512)
	if st.maxChannelStdDev > h.MineralizationStdDev {
		confidence = clamp01(confidence + 0.1)
	}

	return Observation{
		Type:                t,
		GeologicalPeriod:    profile.period,
		AgeRange:            profile.age,
		PreservationQuality: preservationScore(st.colorVariance),
		SpeciesCandidates:   candidatesFor(t, confidence),
		Confidence:          confidence,
	}, nil
}

// preservationScore grades legibility off color variance: rich variance
// means intact detail survived fossilization.
func preservationScore(variance float64) float64 {
	switch {
	case variance > 1000:
		return 0.92
	case variance > 500:
		return 0.75
	default:
		return 0.58
	}
}

// candidatesFor suggests reference species for the detected type, ranked by
// confidence decaying from the overall call.
func candidatesFor(t fossil.Type, confidence float64) []fossil.SpeciesCandidate {
	known := fossil.SpeciesFor(t)
	out := make([]fossil.SpeciesCandidate, 0, len(known))
	for i, s := range known {
		out = append(out, fossil.SpeciesCandidate{
			Name:       s.Name,
			Confidence: clamp01(confidence * (1 - 0.15*float64(i))),
		})
	}
	return out
}

// stats holds the pixel measurements one classification works from.
type stats struct {
	brightness       float64 // grayscale mean, 0-255
	texture          float64 // grayscale std dev
	colorVariance    float64 // variance across all channels
	maxChannelStdDev float64 // strongest per-channel std dev
	warmth           float64 // (mean red - mean blue) / 255
	edgeDensity      float64 // fraction of Sobel magnitudes above threshold
}

func measure(img image.Image, edgeThreshold float64) stats {
	bounds := img.Bounds()
	n := float64(bounds.Dx() * bounds.Dy())

	var sum, sumSq [3]float64
	gray := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := [3]float64{float64(r >> 8), float64(g >> 8), float64(b >> 8)}
			for i, v := range c {
				sum[i] += v
				sumSq[i] += v * v
			}
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}

	var st stats
	var total, totalSq, maxStd float64
	for i := 0; i < 3; i++ {
		mean := sum[i] / n
		variance := sumSq[i]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		if std := math.Sqrt(variance); std > maxStd {
			maxStd = std
		}
		total += sum[i]
		totalSq += sumSq[i]
	}
	overallMean := total / (3 * n)
	st.colorVariance = totalSq/(3*n) - overallMean*overallMean
	if st.colorVariance < 0 {
		st.colorVariance = 0
	}
	st.maxChannelStdDev = maxStd
	st.warmth = (sum[0] - sum[2]) / n / 255

	var gSum, gSumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := float64(gray.GrayAt(x, y).Y)
			gSum += v
			gSumSq += v * v
		}
	}
	st.brightness = gSum / n
	gVar := gSumSq/n - st.brightness*st.brightness
	if gVar < 0 {
		gVar = 0
	}
	st.texture = math.Sqrt(gVar)
	st.edgeDensity = edgeDensity(gray, edgeThreshold)

	return st
}

// edgeDensity applies the Sobel operator and returns the fraction of interior
// pixels whose gradient magnitude exceeds the threshold.
func edgeDensity(gray *image.Gray, threshold float64) float64 {
	bounds := gray.Bounds()
	if bounds.Dx() < 3 || bounds.Dy() < 3 {
		return 0
	}

	// Sobel kernels
	gx := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	gy := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	var edges, total int
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sumX, sumY float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
					sumX += pixel * gx[ky+1][kx+1]
					sumY += pixel * gy[ky+1][kx+1]
				}
			}
			if math.Sqrt(sumX*sumX+sumY*sumY) > threshold {
				edges++
			}
			total++
		}
	}

	return float64(edges) / float64(total)
}
