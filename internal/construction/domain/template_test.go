package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func houseTemplate() BuildingTemplate {
	return BuildingTemplate{
		Name: "Two-storey house",
		Stages: []StageTemplate{
			{Name: "Foundation", Substages: []SubstageTemplate{
				{Name: "Excavation", LaborCost: dec("800")},
				{Name: "Pour footing", LaborCost: dec("1200"), Materials: []UsageTemplate{
					{Material: "Cement", Quantity: dec("40")},
					{Material: "Rebar", Quantity: dec("120"), Notes: "12mm"},
				}},
			}},
			{Name: "Framing", Substages: []SubstageTemplate{
				{Name: "Walls", LaborCost: dec("2000"), Materials: []UsageTemplate{
					{Material: "Cement", Quantity: dec("10")},
				}},
			}},
		},
	}
}

func TestBuildingTemplate_Instantiate(t *testing.T) {
	cement, rebar := uuid.New(), uuid.New()
	projectID := uuid.New()

	b, err := houseTemplate().Instantiate(projectID, "", map[string]uuid.UUID{"Cement": cement, "Rebar": rebar}, day1)
	require.NoError(t, err)

	assert.Equal(t, "Two-storey house", b.Name())
	assert.Equal(t, projectID, b.ProjectID())
	assert.Equal(t, StatusNotStarted, b.Status())
	require.Len(t, b.Stages(), 2)
	assert.Equal(t, 1, b.Stages()[0].Order())
	assert.Equal(t, 2, b.Stages()[1].Order())

	footing := sub(b, 1, 2)
	assert.Equal(t, "Pour footing", footing.Name())
	assert.True(t, footing.LaborCost().Equal(dec("1200")))
	require.Len(t, footing.Usages(), 2)
	assert.Equal(t, rebar, footing.Usages()[1].MaterialID())
	assert.Equal(t, "12mm", footing.Usages()[1].Notes())
	assert.Equal(t, day1, footing.Usages()[0].Date())
}

func TestBuildingTemplate_UnknownMaterial(t *testing.T) {
	_, err := houseTemplate().Instantiate(uuid.New(), "Lot 4", map[string]uuid.UUID{"Cement": uuid.New()}, day1)
	assert.ErrorIs(t, err, ErrUnknownTemplateMaterial)
}

func TestBuildingTemplate_MaterialNames(t *testing.T) {
	assert.Equal(t, []string{"Cement", "Rebar"}, houseTemplate().MaterialNames())
}
