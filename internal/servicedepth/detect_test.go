package servicedepth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

func TestServiceLikePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"/services/", true},
		{"/dental-implants/", true},
		{"/cosmetic-dentistry", true},
		{"/our-team/", true},
		{"/about-us", true},
		{"/sleep-apnea-treatment", true},
		{"/blog/latest-news", false},
		{"/privacy-policy", false},
		{"/contact", false},
		{"/", false},
		{"", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, serviceLikePath(tc.path), tc.path)
	}
}

func TestSlugText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "services dental implants", slugText("/services/dental-implants/"))
	assert.Equal(t, "sleep apnea", slugText("/Sleep_Apnea"))
	assert.Equal(t, "", slugText("/"))
}

func TestBuildMentionsVocabularyOrder(t *testing.T) {
	t.Parallel()

	dedicated := map[model.Procedure]string{
		model.ProcedureVeneers:  "/veneers/",
		model.ProcedureImplants: "/implants/",
	}
	mentioned := map[model.Procedure]bool{
		model.ProcedureVeneers:  true, // superseded by the dedicated page
		model.ProcedureSedation: true,
	}

	got := buildMentions(dedicated, mentioned)
	assert.Equal(t, []model.ProcedureMention{
		{Procedure: model.ProcedureImplants, Signal: model.SignalDedicatedPage, URLPath: "/implants/"},
		{Procedure: model.ProcedureVeneers, Signal: model.SignalDedicatedPage, URLPath: "/veneers/"},
		{Procedure: model.ProcedureSedation, Signal: model.SignalMentionedOnly},
	}, got)
}
