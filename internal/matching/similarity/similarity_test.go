package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SimilaritySuite struct {
	suite.Suite
}

func TestSimilaritySuite(t *testing.T) {
	suite.Run(t, new(SimilaritySuite))
}

func (s *SimilaritySuite) TestEditSimilarity() {
	s.Run("identical strings score 1", func() {
		s.Equal(1.0, EditSimilarity("rahim uddin", "rahim uddin"))
	})

	s.Run("two empty strings score 0", func() {
		s.Equal(0.0, EditSimilarity("", ""))
	})

	s.Run("one empty string scores 0", func() {
		s.Equal(0.0, EditSimilarity("rahim", ""))
	})

	s.Run("single substitution", func() {
		// kitten/sitten: one edit over six runes
		s.InDelta(1-1.0/6, EditSimilarity("kitten", "sitten"), 1e-9)
	})

	s.Run("symmetric", func() {
		s.Equal(EditSimilarity("nasreen", "nasrin"), EditSimilarity("nasrin", "nasreen"))
	})

	s.Run("measured in runes", func() {
		s.InDelta(0.75, EditSimilarity("ñaña", "naña"), 1e-9)
	})

	s.Run("bounded", func() {
		v := EditSimilarity("abc", "xyzxyz")
		s.GreaterOrEqual(v, 0.0)
		s.LessOrEqual(v, 1.0)
	})
}

func (s *SimilaritySuite) TestTokenOverlap() {
	s.Equal(2, TokenOverlap("dhaka medical", "dhaka medical hospital", InstitutionTokenMinLen))
	s.Run("short tokens ignored", func() {
		s.Equal(0, TokenOverlap("of the", "of the", InstitutionTokenMinLen))
	})
	s.Run("duplicates counted once", func() {
		s.Equal(1, TokenOverlap("dhaka dhaka", "dhaka", InstitutionTokenMinLen))
	})
	s.True(TokensMatch("bangabandhu sheikh mujib medical", "sheikh mujib", InstitutionTokenMinLen))
	s.False(TokensMatch("dhaka medical", "dhaka dental", InstitutionTokenMinLen))
	s.False(TokensMatch("", "", NameTokenMinLen))
}

func (s *SimilaritySuite) TestTokenOverlapRatio() {
	s.Equal(1.0, TokenOverlapRatio("clinical psychology", "psychology clinical"))
	s.InDelta(1.0/3, TokenOverlapRatio("child psychology", "child clinical therapy"), 1e-9)
	s.Equal(0.0, TokenOverlapRatio("", "child"))
	s.Equal(0.0, TokenOverlapRatio("", ""))
}

func (s *SimilaritySuite) TestContains() {
	s.True(Contains("dhaka", "of dhaka"))
	s.True(Contains("of dhaka", "dhaka"))
	s.False(Contains("", "dhaka"))
	s.False(Contains("", ""))
	s.False(Contains("dhaka", "chittagong"))
}

func (s *SimilaritySuite) TestEmailSimilarity() {
	s.Run("equal ignoring case", func() {
		s.Equal(1.0, EmailSimilarity("Doc@Example.com", "doc@example.com"))
	})
	s.Run("same domain scaled by local-part similarity", func() {
		// rahim/rahima: one insertion over six runes
		s.InDelta(DomainMatchFactor*(1-1.0/6), EmailSimilarity("rahim@clinic.bd", "rahima@clinic.bd"), 1e-9)
	})
	s.Run("different domain", func() {
		s.Equal(0.0, EmailSimilarity("rahim@clinic.bd", "rahim@hospital.bd"))
	})
	s.Run("empty or malformed", func() {
		s.Equal(0.0, EmailSimilarity("", ""))
		s.Equal(0.0, EmailSimilarity("rahim", "rahim2"))
	})
}

func (s *SimilaritySuite) TestDegreeEquivalence() {
	s.Run("phd psychology is doctor of psychology", func() {
		s.True(DegreesMatch("PhD Psychology", "Doctor of Psychology"))
	})
	s.Run("abbreviation with punctuation", func() {
		s.True(DegreesMatch("M.Sc.", "Master of Science"))
	})
	s.Run("containment", func() {
		s.True(DegreesMatch("MS Clinical Psychology", "ms clinical psychology (hons)"))
	})
	s.Run("whole word only", func() {
		s.False(DegreesEquivalent("jobs training", "bachelor of science"))
	})
	s.Run("different levels", func() {
		s.False(DegreesMatch("Bachelor of Psychology", "Doctor of Psychology"))
	})
	s.Run("empty", func() {
		s.False(DegreesMatch("", "PhD"))
	})
}

func (s *SimilaritySuite) TestInstitutionsMatch() {
	s.True(InstitutionsMatch("University of Dhaka", "Dhaka University"))
	s.True(InstitutionsMatch("Bangabandhu Sheikh Mujib Medical University", "BSMMU Sheikh Mujib Medical"))
	s.False(InstitutionsMatch("University", "College"))
	s.False(InstitutionsMatch("Rajshahi University", "Chittagong University"))
}

func (s *SimilaritySuite) TestNamesMatch() {
	s.True(NamesMatch("Dr. Rahim Uddin", "rahim uddin"))
	s.True(NamesMatch("Rahim Uddin", "Mohammad Rahim Uddin"))
	s.True(NamesMatch("Uddin Rahim Ahmed", "Rahim Karim Uddin"))
	s.False(NamesMatch("Rahim Uddin", "Karim Hossain"))
	s.False(NamesMatch("", ""))
}

func TestPrimitivesAreTotal(t *testing.T) {
	inputs := []string{"", " ", "\x00", "a", "ñ", "dr.", "@", "a@", "@b"}
	for _, a := range inputs {
		for _, b := range inputs {
			assert.NotPanics(t, func() {
				EditSimilarity(a, b)
				TokenOverlapRatio(a, b)
				EmailSimilarity(a, b)
				DegreesMatch(a, b)
				InstitutionsMatch(a, b)
				NamesMatch(a, b)
			})
		}
	}
}
