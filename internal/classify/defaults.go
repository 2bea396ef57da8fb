package classify

// Radar category ids.
const (
	CategoryTechBreakthrough  = "tech_breakthrough"
	CategorySocialPhenomenon  = "social_phenomenon"
	CategoryFinanceCapital    = "finance_capital"
	CategoryPolicyGovernance  = "policy_governance"
	CategorySafetyIncident    = "safety_incident"
	CategoryEnergyEnvironment = "energy_environment"
)

// Faction tags.
const (
	FactionVingeCompute    = "Vinge/Compute"
	FactionBanksGovernance = "Banks/Governance"
	FactionAntimemetics    = "Antimemetics"
	FactionChiangLanguage  = "TedChiang/Language"
	FactionEgan            = "Egan"
	FactionWatts           = "Watts"
	FactionSimulation      = "Simulation"
	FactionReligionMeaning = "Religion/Meaning"
)

// Axis names.
const (
	AxisCompute    = "compute"
	AxisGovernance = "governance"
	AxisNarrative  = "narrative"
	AxisBehavior   = "behavior"
	AxisCapability = "capability"
)

// DefaultTaxonomy returns the built-in rule tables.
func DefaultTaxonomy() Taxonomy {
	tax := Taxonomy{
		RadarOrder: []string{
			CategoryTechBreakthrough,
			CategorySocialPhenomenon,
			CategoryFinanceCapital,
			CategoryPolicyGovernance,
			CategorySafetyIncident,
			CategoryEnergyEnvironment,
		},
		Radar: map[string]RadarCategoryDef{
			CategoryTechBreakthrough: {
				ID:      CategoryTechBreakthrough,
				LabelEN: "Tech Breakthrough",
				LabelZH: "技术突破",
				SeedKeywordsEN: []string{
					"breakthrough", "benchmark", "SOTA", "state of the art", "model release",
					"GPT", "Claude", "Gemini", "training", "inference", "parameter",
					"scaling", "multimodal", "agent", "reasoning",
				},
				SeedKeywordsZH: []string{"突破", "基准", "发布", "模型", "训练", "推理", "参数", "多模态", "智能体"},
				Signals: []Signal{
					{Pattern: `(?i)\b(GPT-|Claude|Gemini|Llama|Mistral)\b`, Weight: 2},
					{Pattern: `(?i)\b(SOTA|state of the art|benchmark)\b`, Weight: 2},
					{Pattern: `(?i)\b(release|launch|announce)\b.*\b(model|API)\b`, Weight: 1.5},
				},
				SourcePrior: map[string]float64{
					"OpenAI Blog":            0.7,
					"Anthropic News":         0.7,
					"DeepMind Blog":          0.7,
					"OpenAI GitHub Releases": 0.8,
				},
			},
			CategorySocialPhenomenon: {
				ID:      CategorySocialPhenomenon,
				LabelEN: "Social Phenomenon",
				LabelZH: "社会现象",
				SeedKeywordsEN: []string{
					"adoption", "usage", "workforce", "job", "education", "consumer",
					"viral", "trend", "impact", "society", "public", "perception",
				},
				SeedKeywordsZH: []string{"采用", "就业", "教育", "消费者", "社会影响", "公众"},
				Signals: []Signal{
					{Pattern: `(?i)\b(workforce|job|employment|layoff)\b`, Weight: 2},
					{Pattern: `(?i)\b(adoption|usage|consumer|viral)\b`, Weight: 1.5},
					{Pattern: `(?i)\b(education|student|school)\b.*\bAI\b`, Weight: 1.5},
				},
				SourcePrior: map[string]float64{},
			},
			CategoryFinanceCapital: {
				ID:      CategoryFinanceCapital,
				LabelEN: "Finance & Capital",
				LabelZH: "金融与资本",
				SeedKeywordsEN: []string{
					"funding", "investment", "valuation", "IPO", "venture", "capital",
					"revenue", "profit", "market", "stock", "acquisition", "merger",
				},
				SeedKeywordsZH: []string{"融资", "投资", "估值", "上市", "收购", "并购", "市场"},
				Signals: []Signal{
					{Pattern: `(?i)\b(funding|investment|valuation|IPO|venture)\b`, Weight: 2},
					{Pattern: `(?i)\b(acquisition|merger|acquire)\b`, Weight: 2},
					{Pattern: `(?i)\b(revenue|profit|market cap)\b`, Weight: 1},
				},
				SourcePrior: map[string]float64{},
			},
			CategoryPolicyGovernance: {
				ID:      CategoryPolicyGovernance,
				LabelEN: "Policy & Governance",
				LabelZH: "政策与治理",
				SeedKeywordsEN: []string{
					"regulation", "policy", "AI Act", "legislation", "oversight",
					"compliance", "antitrust", "government", "agency", "standard",
					"law", "enforcement",
				},
				SeedKeywordsZH: []string{"监管", "政策", "立法", "合规", "反垄断", "政府"},
				Signals: []Signal{
					{Pattern: `(?i)\b(AI Act|EU AI|enforcement)\b`, Weight: 2},
					{Pattern: `(?i)\b(regulation|legislation|oversight|compliance)\b`, Weight: 2},
					{Pattern: `(?i)\b(antitrust|FTC|DOJ|EU)\b`, Weight: 1.5},
				},
				SourcePrior: map[string]float64{},
			},
			CategorySafetyIncident: {
				ID:      CategorySafetyIncident,
				LabelEN: "Safety & Incident",
				LabelZH: "安全事故",
				SeedKeywordsEN: []string{
					"safety", "incident", "breach", "attack", "vulnerability",
					"exploit", "misuse", "harm", "risk", "alignment", "jailbreak",
				},
				SeedKeywordsZH: []string{"安全", "事故", "漏洞", "攻击", "滥用", "风险", "对齐"},
				Signals: []Signal{
					{Pattern: `(?i)\b(breach|attack|vulnerability|exploit)\b`, Weight: 2},
					{Pattern: `(?i)\b(safety|alignment|jailbreak|misuse)\b`, Weight: 1.5},
					{Pattern: `(?i)\b(incident|harm|risk)\b`, Weight: 1},
				},
				SourcePrior: map[string]float64{},
			},
			CategoryEnergyEnvironment: {
				ID:      CategoryEnergyEnvironment,
				LabelEN: "Energy & Environment",
				LabelZH: "能源/环境",
				SeedKeywordsEN: []string{
					"energy", "power", "carbon", "emission", "datacenter", "cooling",
					"sustainability", "climate", "water", "electricity",
				},
				SeedKeywordsZH: []string{"能源", "电力", "碳", "排放", "数据中心", "可持续"},
				Signals: []Signal{
					{Pattern: `(?i)\b(datacenter|data center|power consumption)\b`, Weight: 2},
					{Pattern: `(?i)\b(carbon|emission|sustainability|climate)\b`, Weight: 2},
					{Pattern: `(?i)\b(energy|electricity|cooling)\b.*\bAI\b`, Weight: 1.5},
				},
				SourcePrior: map[string]float64{},
			},
		},
		Factions: []string{
			FactionVingeCompute,
			FactionBanksGovernance,
			FactionAntimemetics,
			FactionChiangLanguage,
			FactionEgan,
			FactionWatts,
			FactionSimulation,
			FactionReligionMeaning,
		},
		FactionKeywords: map[string][]string{
			FactionVingeCompute: {
				"compute", "gpu", "datacenter", "scaling", "inference cost",
				"chip export", "hardware", "training", "model size", "parameters",
			},
			FactionBanksGovernance: {
				"regulation", "policy", "antitrust", "agency", "oversight",
				"standards", "compliance", "legislation", "government",
			},
			FactionAntimemetics: {
				"misinformation", "deepfake", "propaganda", "cognitive", "memetic",
				"influence ops", "disinformation", "manipulation",
			},
			FactionChiangLanguage: {
				"prompt", "language", "meaning", "interpretability",
				"communication", "translation", "nlp", "llm",
			},
			FactionEgan: {
				"agent", "persona", "copy", "replica", "digital mind", "autonomous", "agi",
			},
			FactionWatts: {
				"consciousness", "self", "illusion", "sentience", "awareness", "blindsight",
			},
			FactionSimulation: {
				"world model", "simulator", "synthetic", "virtual", "simulation", "digital twin",
			},
			FactionReligionMeaning: {
				"spiritual", "religion", "purpose", "existential", "meaning", "ethics", "moral",
			},
		},
		FactionLabelZH: map[string]string{
			FactionVingeCompute:    "算力与基础设施",
			FactionBanksGovernance: "治理与监管",
			FactionAntimemetics:    "信息战与认知",
			FactionChiangLanguage:  "语言与意义",
			FactionEgan:            "智能体与数字心智",
			FactionWatts:           "意识与自我",
			FactionSimulation:      "模拟与虚拟",
			FactionReligionMeaning: "意义与伦理",
		},
		AxisOrder: []string{AxisCompute, AxisGovernance, AxisNarrative, AxisBehavior, AxisCapability},
		AxisRules: map[string][]AxisRule{
			AxisCompute:    {{Pattern: `\b(compute|gpu|training|inference|chip|parameter)\b`, Weight: 2}},
			AxisGovernance: {{Pattern: `\b(regulation|policy|oversight|compliance|antitrust)\b`, Weight: 2}},
			AxisNarrative:  {{Pattern: `\b(story|narrative|meaning|interpret)\b`, Weight: 1}},
			AxisBehavior:   {{Pattern: `\b(agent|autonomous|behavior|persona)\b`, Weight: 2}},
			AxisCapability: {{Pattern: `\b(capability|ability|skill|performance)\b`, Weight: 1}},
		},
		DefaultFaction: FactionVingeCompute,
	}

	if err := tax.compile(); err != nil {
		// The built-in patterns are fixed literals; a compile failure is a
		// programming error.
		panic(err)
	}
	return tax
}
