package wizard

import "lavapp/pkg/models"

// Section is a group of services shown together on one ordering path.
type Section struct {
	Key      string           `json:"key"`
	Title    string           `json:"title"`
	Services []models.Service `json:"services"`
}

type sectionRule struct {
	key      string
	title    string
	category models.ServiceCategory
	// empty means any availability
	availability models.Availability
}

var sectionRules = map[ServiceType][]sectionRule{
	TypePlans: {
		{key: "plans", title: "Planos Mensais", category: models.CategoryPlan},
		{key: "extras", title: "Extras para Assinantes", category: models.CategoryExtra, availability: models.AvailabilityPlanOnly},
		{key: "packaging", title: "Opções de Embalagem", category: models.CategoryPackaging},
	},
	TypeOneOff: {
		{key: "base", title: "Serviço Base", category: models.CategoryBase},
		{key: "extras", title: "Extras para Cesto", category: models.CategoryExtra, availability: models.AvailabilityOneOffOnly},
		{key: "special-care", title: "Cuidados Especiais", category: models.CategorySpecialCare},
		{key: "packaging", title: "Opções de Embalagem", category: models.CategoryPackaging},
	},
}

func (r sectionRule) matches(s models.Service) bool {
	if s.Category != r.category {
		return false
	}
	return r.availability == "" || s.Availability == r.availability || s.Availability == models.AvailabilityBoth
}

// Sections groups services for the given path, keeping catalog order inside each section.
func Sections(t ServiceType, services []models.Service) []Section {
	rules := sectionRules[t]
	out := make([]Section, 0, len(rules))
	for _, rule := range rules {
		section := Section{Key: rule.key, Title: rule.title, Services: []models.Service{}}
		for _, s := range services {
			if rule.matches(s) {
				section.Services = append(section.Services, s)
			}
		}
		out = append(out, section)
	}
	return out
}
