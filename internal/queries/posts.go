package queries

import (
	"math"
	"time"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// PostsPerPage is the fixed page size for every listing.
const PostsPerPage = 10

// Visible builds the base query for posts the public can see at time now:
// published, publication date reached, and the category (when set) published
// too. The join is a LEFT JOIN so posts without a category stay visible.
func Visible(g *gorm.DB, now time.Time) *gorm.DB {
	return g.Model(&models.Post{}).
		Joins("LEFT JOIN categories ON categories.id = posts.category_id").
		Where("posts.is_published = ? AND posts.pub_date <= ? AND (posts.category_id IS NULL OR categories.is_published = ?)",
			true, now, true)
}

// VisibleInCategory narrows the visible set to one category.
func VisibleInCategory(g *gorm.DB, now time.Time, categoryID uint) *gorm.DB {
	return Visible(g, now).Where("posts.category_id = ?", categoryID)
}

// ByAuthor returns the posts shown on an author's profile page. The owner
// sees everything they wrote, published or not; anyone else gets the public
// subset.
func ByAuthor(g *gorm.DB, now time.Time, author *models.User, viewer *models.User) *gorm.DB {
	if viewer != nil && viewer.ID == author.ID {
		return g.Model(&models.Post{}).Where("posts.author_id = ?", author.ID)
	}
	return Visible(g, now).Where("posts.author_id = ?", author.ID)
}

// Page is one page of a post listing.
type Page struct {
	Posts      []models.Post
	Number     int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// Paginate runs q ordered newest-first and returns the requested page.
// Out-of-range page numbers clamp to the nearest valid page, so any N >= 1
// returns content rather than an error.
func Paginate(q *gorm.DB, page int) (Page, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page{}, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(PostsPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	var posts []models.Post
	err := q.Session(&gorm.Session{}).
		Preload("Author").Preload("Category").Preload("Location").
		Order("posts.pub_date DESC").
		Limit(PostsPerPage).
		Offset((page - 1) * PostsPerPage).
		Find(&posts).Error
	if err != nil {
		return Page{}, err
	}

	if err := FillCommentCounts(q.Session(&gorm.Session{NewDB: true}), posts); err != nil {
		return Page{}, err
	}

	return Page{
		Posts:      posts,
		Number:     page,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}, nil
}

// FillCommentCounts annotates posts with their live comment counts in a
// single grouped query.
func FillCommentCounts(g *gorm.DB, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	err := g.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return err
	}

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
	return nil
}

// CommentsForPost loads a post's comments in display order, oldest first.
func CommentsForPost(g *gorm.DB, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := g.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}
