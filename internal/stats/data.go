package stats

// Missing marks a counter that the page did not expose.
const Missing = -1

// counter names as they appear in the Emergent Mind page payload, paired
// with the column name used in the spreadsheet and the cache.
var counters = []struct {
	pageKey string
	column  string
}{
	{"twitter_likes_count", "twitterLikesCount"},
	{"reddit_points_count", "redditPointsCount"},
	{"hacker_news_points_count", "hackerNewsPointsCount"},
	{"github_repos_count", "githubReposCount"},
	{"github_stars_count", "githubStarsCount"},
}

// SocialStats are the social-media counters of one paper.
type SocialStats struct {
	TwitterLikes     int
	RedditPoints     int
	HackerNewsPoints int
	GithubRepos      int
	GithubStars      int
}

// Columns lists the spreadsheet columns in the order Values returns them.
func Columns() []string {
	cols := make([]string, len(counters))
	for i, c := range counters {
		cols[i] = c.column
	}
	return cols
}

func (s SocialStats) Values() []int {
	return []int{s.TwitterLikes, s.RedditPoints, s.HackerNewsPoints, s.GithubRepos, s.GithubStars}
}

func (s SocialStats) toMap() map[string]int {
	values := s.Values()
	m := make(map[string]int, len(counters))
	for i, c := range counters {
		m[c.column] = values[i]
	}
	return m
}

func fromMap(m map[string]int) SocialStats {
	get := func(column string) int {
		if v, ok := m[column]; ok {
			return v
		}
		return Missing
	}
	return SocialStats{
		TwitterLikes:     get("twitterLikesCount"),
		RedditPoints:     get("redditPointsCount"),
		HackerNewsPoints: get("hackerNewsPointsCount"),
		GithubRepos:      get("githubReposCount"),
		GithubStars:      get("githubStarsCount"),
	}
}
