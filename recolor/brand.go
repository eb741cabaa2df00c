package recolor

// BrandPairs returns SLDS brand-base blue scale mapped to the teal scale.
func BrandPairs() []Pair {
	return []Pair{
		{From: "#0176d3", To: "#05878a"}, // brand-base-50 (primary)
		{From: "#1b96ff", To: "#1aa3a6"}, // brand-base-60
		{From: "#014486", To: "#035052"}, // brand-base-30
		{From: "#0b5cab", To: "#046b6d"}, // brand-base-40
		{From: "#032d60", To: "#023638"}, // brand-base-20
		{From: "#03234d", To: "#012a2b"}, // brand-base-15
		{From: "#001639", To: "#001d1e"}, // brand-base-10
		{From: "#57a3fd", To: "#4dbcbe"}, // brand-base-65
		{From: "#78b0fd", To: "#6fcbcd"}, // brand-base-70
		{From: "#aacbff", To: "#a0dfe0"}, // brand-base-80
		{From: "#d8e6fe", To: "#d1f0f0"}, // brand-base-90
		{From: "#eef4ff", To: "#e8f7f7"}, // brand-base-95
		{From: "#418fde", To: "#05878a"}, // misc brand blue variant
	}
}

// DefaultColorMap returns table built from BrandPairs.
func DefaultColorMap() *ColorMap {
	return MustColorMap(BrandPairs()...)
}
