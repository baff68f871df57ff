package honor

// GlobalHonor is one entry in the curated honors table.  Category groups
// variants of the same distinction ("lasker", "padma", …) so that a profile
// listing two spellings of one award is only credited once.
type GlobalHonor struct {
	Name     string
	Tier     Tier
	Country  string // empty for international honors
	Category string
}

// knownHonors is the curated table of recognised medical honors.  Matching is
// performed against the normalized form of Name (see normalizeName); ordering
// matters only for substring matching, where the first hit wins, so more
// specific names come before generic ones within a category.
var knownHonors = []GlobalHonor{
	// ── Global landmark distinctions ─────────────────────────────────────────
	{Name: "Nobel Prize in Physiology or Medicine", Tier: TierGlobalLandmark, Category: "nobel"},
	{Name: "Nobel Prize", Tier: TierGlobalLandmark, Category: "nobel"},
	{Name: "Lasker Award for Basic Medical Research", Tier: TierGlobalLandmark, Category: "lasker"},
	{Name: "Lasker Award for Clinical Medical Research", Tier: TierGlobalLandmark, Category: "lasker"},
	{Name: "Lasker-DeBakey Clinical Medical Research Award", Tier: TierGlobalLandmark, Category: "lasker"},
	{Name: "Lasker Award", Tier: TierGlobalLandmark, Category: "lasker"},
	{Name: "Canada Gairdner International Award", Tier: TierGlobalLandmark, Country: "Canada", Category: "gairdner"},
	{Name: "Gairdner Foundation International Award", Tier: TierGlobalLandmark, Country: "Canada", Category: "gairdner"},
	{Name: "Breakthrough Prize in Life Sciences", Tier: TierGlobalLandmark, Category: "breakthrough"},
	{Name: "Wolf Prize in Medicine", Tier: TierGlobalLandmark, Country: "Israel", Category: "wolf"},
	{Name: "Shaw Prize in Life Science and Medicine", Tier: TierGlobalLandmark, Country: "Hong Kong", Category: "shaw"},
	{Name: "Kyoto Prize", Tier: TierGlobalLandmark, Country: "Japan", Category: "kyoto"},
	{Name: "Copley Medal", Tier: TierGlobalLandmark, Country: "United Kingdom", Category: "copley"},
	{Name: "Albany Medical Center Prize", Tier: TierGlobalLandmark, Country: "United States", Category: "albany"},
	{Name: "Japan Prize", Tier: TierGlobalLandmark, Country: "Japan", Category: "japan-prize"},
	{Name: "Tang Prize in Biopharmaceutical Science", Tier: TierGlobalLandmark, Country: "Taiwan", Category: "tang"},
	{Name: "Millennium Technology Prize", Tier: TierGlobalLandmark, Country: "Finland", Category: "millennium"},

	// ── National honors ──────────────────────────────────────────────────────
	{Name: "Bharat Ratna", Tier: TierNationalHonor, Country: "India", Category: "bharat-ratna"},
	{Name: "Padma Vibhushan", Tier: TierNationalHonor, Country: "India", Category: "padma"},
	{Name: "Padma Bhushan", Tier: TierNationalHonor, Country: "India", Category: "padma"},
	{Name: "Padma Shri", Tier: TierNationalHonor, Country: "India", Category: "padma"},
	{Name: "Dr. B.C. Roy Award", Tier: TierNationalHonor, Country: "India", Category: "bc-roy"},
	{Name: "Presidential Medal of Freedom", Tier: TierNationalHonor, Country: "United States", Category: "medal-of-freedom"},
	{Name: "National Medal of Science", Tier: TierNationalHonor, Country: "United States", Category: "national-medal-science"},
	{Name: "Congressional Gold Medal", Tier: TierNationalHonor, Country: "United States", Category: "congressional-gold"},
	{Name: "Order of Canada", Tier: TierNationalHonor, Country: "Canada", Category: "order-of-canada"},
	{Name: "Order of the British Empire", Tier: TierNationalHonor, Country: "United Kingdom", Category: "british-empire"},
	{Name: "Knight Bachelor", Tier: TierNationalHonor, Country: "United Kingdom", Category: "knighthood"},
	{Name: "Companion of Honour", Tier: TierNationalHonor, Country: "United Kingdom", Category: "companion-honour"},
	{Name: "Legion of Honour", Tier: TierNationalHonor, Country: "France", Category: "legion-honneur"},
	{Name: "Ordre national de la Légion d'honneur", Tier: TierNationalHonor, Country: "France", Category: "legion-honneur"},
	{Name: "Order of Australia", Tier: TierNationalHonor, Country: "Australia", Category: "order-of-australia"},
	{Name: "Order of the Rising Sun", Tier: TierNationalHonor, Country: "Japan", Category: "rising-sun"},
	{Name: "Pour le Mérite", Tier: TierNationalHonor, Country: "Germany", Category: "pour-le-merite"},
	{Name: "Order of Merit of the Federal Republic of Germany", Tier: TierNationalHonor, Country: "Germany", Category: "bundesverdienstkreuz"},
	{Name: "King Faisal Prize in Medicine", Tier: TierNationalHonor, Country: "Saudi Arabia", Category: "king-faisal"},
	{Name: "Ramon Magsaysay Award", Tier: TierNationalHonor, Country: "Philippines", Category: "magsaysay"},
	{Name: "Order of the Nile", Tier: TierNationalHonor, Country: "Egypt", Category: "order-of-nile"},
	{Name: "National Order of Merit", Tier: TierNationalHonor, Country: "France", Category: "ordre-merite"},
	{Name: "Order of Lenin", Tier: TierNationalHonor, Country: "Russia", Category: "order-of-lenin"},

	// ── Professional excellence awards ───────────────────────────────────────
	{Name: "Lister Medal", Tier: TierProfessionalExcellence, Country: "United Kingdom", Category: "lister"},
	{Name: "Hunterian Medal", Tier: TierProfessionalExcellence, Country: "United Kingdom", Category: "hunterian"},
	{Name: "Honorary Fellowship of the Royal College of Surgeons", Tier: TierProfessionalExcellence, Country: "United Kingdom", Category: "rcs-fellowship"},
	{Name: "Fellowship of the Royal Society", Tier: TierProfessionalExcellence, Country: "United Kingdom", Category: "royal-society"},
	{Name: "American College of Surgeons Distinguished Service Award", Tier: TierProfessionalExcellence, Country: "United States", Category: "acs-distinguished"},
	{Name: "American Medical Association Distinguished Service Award", Tier: TierProfessionalExcellence, Country: "United States", Category: "ama-distinguished"},
	{Name: "American Surgical Association Medallion for Scientific Achievement", Tier: TierProfessionalExcellence, Country: "United States", Category: "asa-medallion"},
	{Name: "Jacobson Innovation Award", Tier: TierProfessionalExcellence, Country: "United States", Category: "jacobson"},
	{Name: "Flance-Karl Award", Tier: TierProfessionalExcellence, Country: "United States", Category: "flance-karl"},
	{Name: "Rudolf Virchow Medal", Tier: TierProfessionalExcellence, Country: "Germany", Category: "virchow"},
	{Name: "Bigelow Medal", Tier: TierProfessionalExcellence, Country: "United States", Category: "bigelow"},
	{Name: "Medawar Prize", Tier: TierProfessionalExcellence, Category: "medawar"},
	{Name: "Michael E. DeBakey Surgical Award", Tier: TierProfessionalExcellence, Country: "United States", Category: "debakey"},
	{Name: "Denton Cooley Leadership Award", Tier: TierProfessionalExcellence, Country: "United States", Category: "cooley"},
	{Name: "Association of Surgeons Lifetime Achievement Award", Tier: TierProfessionalExcellence, Category: "surgical-lifetime"},
	{Name: "Master of the American College of Physicians", Tier: TierProfessionalExcellence, Country: "United States", Category: "macp"},
	{Name: "Honorary Doctor of Science", Tier: TierProfessionalExcellence, Category: "honorary-dsc"},
	{Name: "WHO Director-General's Award", Tier: TierProfessionalExcellence, Category: "who-award"},
	{Name: "International College of Surgeons Honored Fellow", Tier: TierProfessionalExcellence, Category: "ics-fellow"},
	{Name: "European Society of Cardiology Gold Medal", Tier: TierProfessionalExcellence, Country: "Europe", Category: "esc-gold"},
	{Name: "Royal Medal", Tier: TierProfessionalExcellence, Country: "United Kingdom", Category: "royal-medal"},
}

// keywordRule maps a tier-indicative substring to a tier for stage-3 matching.
type keywordRule struct {
	Keyword string
	Tier    Tier
}

// tierKeywords is consulted only after exact and substring matching fail.
// Order matters: the first keyword found in the award name wins.
var tierKeywords = []keywordRule{
	{Keyword: "nobel", Tier: TierGlobalLandmark},
	{Keyword: "lasker", Tier: TierGlobalLandmark},
	{Keyword: "gairdner", Tier: TierGlobalLandmark},
	{Keyword: "breakthrough prize", Tier: TierGlobalLandmark},
	{Keyword: "wolf prize", Tier: TierGlobalLandmark},
	{Keyword: "padma", Tier: TierNationalHonor},
	{Keyword: "presidential medal", Tier: TierNationalHonor},
	{Keyword: "national medal", Tier: TierNationalHonor},
	{Keyword: "congressional", Tier: TierNationalHonor},
	{Keyword: "legion of honour", Tier: TierNationalHonor},
	{Keyword: "legion of honor", Tier: TierNationalHonor},
	{Keyword: "knight", Tier: TierNationalHonor},
	{Keyword: "order of", Tier: TierNationalHonor},
	{Keyword: "national order", Tier: TierNationalHonor},
	{Keyword: "lifetime achievement", Tier: TierProfessionalExcellence},
	{Keyword: "distinguished service", Tier: TierProfessionalExcellence},
	{Keyword: "honorary fellowship", Tier: TierProfessionalExcellence},
	{Keyword: "honorary doctorate", Tier: TierProfessionalExcellence},
	{Keyword: "gold medal", Tier: TierProfessionalExcellence},
	{Keyword: "medal", Tier: TierProfessionalExcellence},
	{Keyword: "fellowship", Tier: TierProfessionalExcellence},
}
