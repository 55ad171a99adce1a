package types

// Referral holds the three segments of a referral phrase. A nil field means
// the segment could not be produced, which is distinct from an empty string.
type Referral struct {
	Exam     *string `json:"exam"`
	BodyPart *string `json:"body_part"`
	Contrast *string `json:"contrast"`
}

func (r Referral) IsNull() bool {
	return r.Exam == nil && r.BodyPart == nil && r.Contrast == nil
}
