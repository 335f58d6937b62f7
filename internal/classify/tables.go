package classify

const (
	DomainLegal          = "legal"
	DomainHumanResources = "human-resources"
	DomainEconomic       = "economic"
)

// DefaultDomainTable returns the built-in domain keywords.
func DefaultDomainTable() Table {
	return Table{
		{Label: DomainLegal, Keywords: []string{
			"droit", "loi", "code", "juridique", "tribunal", "justice", "contrat", "responsabilité",
		}},
		{Label: DomainHumanResources, Keywords: []string{
			"salarié", "emploi", "recrutement", "formation", "rh", "ressources humaines", "travail",
		}},
		{Label: DomainEconomic, Keywords: []string{
			"économie", "finance", "aide", "subvention", "crédit", "impôt", "fiscal",
		}},
	}
}

// DefaultSubcategoryTable returns the built-in business subcategories.
func DefaultSubcategoryTable() Table {
	return Table{
		{Label: "business-creation", Domain: DomainLegal, Keywords: []string{
			"création", "créer", "SARL", "SAS", "micro-entreprise", "auto-entrepreneur",
			"société", "statut", "immatriculation", "capital", "gérant",
		}},
		{Label: "business-tax", Domain: DomainEconomic, Keywords: []string{
			"TVA", "impôt", "fiscal", "déclaration", "bénéfice", "déduction",
			"crédit d'impôt", "comptabilité", "bilan",
		}},
		{Label: "labor-law", Domain: DomainHumanResources, Keywords: []string{
			"salarié", "contrat de travail", "licenciement", "préavis", "indemnité",
			"temps de travail", "congés", "formation professionnelle",
		}},
		{Label: "payroll-social", Domain: DomainHumanResources, Keywords: []string{
			"cotisations", "URSSAF", "charges sociales", "bulletin de paie",
			"sécurité sociale", "retraite", "chômage",
		}},
		{Label: "public-aid", Domain: DomainEconomic, Keywords: []string{
			"aide", "subvention", "crédit", "financement", "dispositif",
			"accompagnement", "soutien",
		}},
	}
}

// DefaultContentTable returns the built-in chunk content tags.
func DefaultContentTable() Table {
	return Table{
		{Label: "procedure", Keywords: []string{"démarche", "procédure", "étape", "comment", "mode d'emploi"}},
		{Label: "definition", Keywords: []string{"définition", "qu'est-ce", "signifie", "correspond"}},
		{Label: "obligation", Keywords: []string{"obligation", "devoir", "doit", "tenu de", "obligatoire"}},
		{Label: "entitlement", Keywords: []string{"droit", "peut", "autorisé", "possibilité", "faculté"}},
		{Label: "sanction", Keywords: []string{"sanction", "amende", "pénalité", "infraction", "contravention"}},
		{Label: "aid", Keywords: []string{"aide", "subvention", "allocation", "financement", "soutien"}},
	}
}
