package resolve

// Keyword lists shared by the cascade, the classifier shape heuristics, and
// the web-research scorers. Multi-word entries score higher via
// engine.KeywordScore's word-count weighting.

// jobKeywords match link text and URLs that point at job listings.
var jobKeywords = []string{
	"job", "jobs", "career", "careers", "employment",
	"employment opportunities", "job opportunities", "vacanc",
	"hiring", "work with us", "join our team", "postings",
	"recruitment", "opportunities",
}

// careerKeywords match page body text on a careers landing page.
var careerKeywords = []string{
	"career", "employment", "job", "human resources",
	"hiring", "vacanc", "opportunities", "apply",
}

// postingMarkers are strong signals that a page lists concrete postings.
var postingMarkers = []string{
	"closing date", "apply now", "posting date", "job posting",
	"deadline to apply", "competition number",
}

// contextLinkKeywords identify secondary-navigation pages worth crawling for
// job links the homepage itself doesn't carry.
var contextLinkKeywords = []string{
	"about", "contact", "administration", "departments",
	"government", "services", "community",
}

// careerPaths are conventional career-page locations probed against a
// homepage's origin, most common first. Fast mode probes only the first
// fastProbePaths of them.
var careerPaths = []string{
	"/careers",
	"/jobs",
	"/employment",
	"/employment-opportunities",
	"/job-opportunities",
	"/careers/jobs",
	"/human-resources/careers",
	"/about/careers",
	"/government/employment",
	"/hr/jobs",
}

// Scoring constants. The acceptance thresholds are empirically tuned against
// real municipal and First Nation sites; recalibrate them with fresh data
// rather than treating them as invariants.
const (
	scoreVendorMatch  = 100 // URL matched the known-ATS vendor table
	scoreKeywordPage  = 80  // page body carried enough career keywords
	scorePDFHeld      = 10  // PDF candidate, held as last resort
	maxAnchorsPerPage = 200

	minBodyCareerKeywords = 2 // distinct career keywords to accept a probed page

	fastProbePaths    = 3
	maxContextPages   = 2
	maxBrowserPages   = 3
	minJobRequestURLs = 3 // sniffed request URLs matching job keywords imply html_list

	kgMinSimilarity   = 0.45
	kgAcceptScore     = 5
	homepageEarlyStop = 9
	homepageFloor     = 4
	jobsEarlyStop     = 12
	jobsFloor         = 4

	hostTokenWeight = 3 // token hit in host+path vs. body
	bodyTokenWeight = 1
)
