package sgsynth

import (
	"fmt"
	"strconv"
	"strings"

	intfx "github.com/cbegin/sgsynth-go/internal/effects"
)

// parseEffect builds a master effect from a "type p1,p2,..." description.
// Missing parameters take defaults:
//
//	reverb     room size 0.5, feedback 0.7, wet 0.25
//	delay      250 ms, feedback 0.4, cross 0.2, wet 0.3
//	comp       threshold -20 dB, ratio 4, attack 5 ms, release 100 ms, makeup 6 dB
func parseEffect(desc string, sampleRate int) (intfx.Effector, error) {
	raw := strings.TrimSpace(desc)
	raw = strings.TrimPrefix(raw, "{")
	raw = strings.TrimSuffix(raw, "}")
	parts := strings.SplitN(strings.TrimSpace(raw), " ", 2)
	kind := strings.ToLower(strings.TrimSpace(parts[0]))
	var params []float64
	if len(parts) > 1 {
		for _, p := range strings.Split(parts[1], ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("effect %q: %w", kind, err)
			}
			params = append(params, v)
		}
	}
	param := func(idx int, def float64) float64 {
		if idx < len(params) {
			return params[idx]
		}
		return def
	}
	switch kind {
	case "reverb":
		return intfx.NewReverb(sampleRate,
			float32(param(0, 0.5)),  // room size
			float32(param(1, 0.7)),  // feedback
			float32(param(2, 0.25)), // wet
		), nil
	case "delay":
		return intfx.NewDelay(sampleRate,
			param(0, 250),          // delay ms
			float32(param(1, 0.4)), // feedback
			float32(param(2, 0.2)), // cross
			float32(param(3, 0.3)), // wet
		), nil
	case "comp", "compressor":
		return intfx.NewCompressor(sampleRate,
			float32(param(0, -20)), // threshold dB
			float32(param(1, 4)),   // ratio
			float32(param(2, 5)),   // attack ms
			float32(param(3, 100)), // release ms
			float32(param(4, 6)),   // makeup dB
		), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, kind)
}

func effectDesc(kind string, params ...float64) string {
	vals := make([]string, len(params))
	for i, p := range params {
		vals[i] = strconv.FormatFloat(p, 'g', -1, 64)
	}
	return kind + " " + strings.Join(vals, ",")
}

func buildEffectChain(descs []string, sampleRate int) (*intfx.Chain, error) {
	if len(descs) == 0 {
		return nil, nil
	}
	chain := intfx.NewChain()
	for _, desc := range descs {
		e, err := parseEffect(desc, sampleRate)
		if err != nil {
			return nil, err
		}
		chain.Add(e)
	}
	return chain, nil
}
