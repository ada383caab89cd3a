package config

import (
	"io"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"roadnet/pkg/connectivity"
	"roadnet/pkg/graph"
	"roadnet/pkg/network"
)

// Write emits cfg as a network file that Parse reads back to the same
// config. Every road and house keeps its id. The house weight comes from the
// delivery view, the only view that has house edges.
func Write(w io.Writer, cfg *Config) error {
	s := cfg.Network.State()
	policy := cfg.Connectivity

	f := hclwrite.NewEmptyFile()
	body := f.Body()

	g := body.AppendNewBlock("graph", nil).Body()
	g.SetAttributeValue("directed", cty.BoolVal(cfg.Road.Directed))
	houseWeight := cfg.Delivery.HouseWeight
	if houseWeight < 0 {
		houseWeight = graph.DefaultHouseWeight
	}
	g.SetAttributeValue("house_weight", cty.NumberFloatVal(houseWeight))
	body.AppendNewline()

	c := body.AppendNewBlock("connectivity", nil).Body()
	c.SetAttributeValue("mode", cty.StringVal(policy.Mode.String()))
	if policy.Mode == connectivity.ModeAutoRepair {
		c.SetAttributeValue("fallback_road", cty.NumberIntVal(int64(policy.FallbackRoad)))
	}

	for _, r := range s.Roads {
		body.AppendNewline()
		rb := body.AppendNewBlock("road", []string{r.Name}).Body()
		rb.SetAttributeValue("id", cty.NumberIntVal(int64(r.ID)))
		rb.SetAttributeValue("length", cty.NumberFloatVal(r.Length))
	}

	for _, in := range s.Intersections {
		body.AppendNewline()
		ib := body.AppendNewBlock("intersection", nil).Body()
		ib.SetAttributeValue("id", cty.NumberIntVal(int64(in.ID)))
		if in.Location != nil {
			ib.SetAttributeValue("lat", cty.NumberFloatVal(in.Location.Lat))
			ib.SetAttributeValue("lng", cty.NumberFloatVal(in.Location.Lng))
		}
		ib.SetAttributeValue("roads", idList(in.Roads))
	}

	for _, h := range s.Houses {
		body.AppendNewline()
		hb := body.AppendNewBlock("house", nil).Body()
		hb.SetAttributeValue("id", cty.NumberIntVal(int64(h.ID)))
		hb.SetAttributeValue("intersection", cty.NumberIntVal(int64(h.IntersectionID)))
	}

	_, err := f.WriteTo(w)
	return err
}

func idList(ids []network.ID) cty.Value {
	if len(ids) == 0 {
		return cty.ListValEmpty(cty.Number)
	}
	vals := make([]cty.Value, len(ids))
	for i, id := range ids {
		vals[i] = cty.NumberIntVal(int64(id))
	}
	return cty.ListVal(vals)
}
