package models

import "reviewhub/proj/internal/storage/postgres"

type Models struct {
	User     *UserModel
	Category *CategoryModel
	Genre    *GenreModel
	Title    *TitleModel
	Review   *ReviewModel
	Comment  *CommentModel
}

func New(db *postgres.Storage) *Models {
	return &Models{
		User:     &UserModel{db.Conn},
		Category: &CategoryModel{db.Conn},
		Genre:    &GenreModel{db.Conn},
		Title:    &TitleModel{db.Conn},
		Review:   &ReviewModel{db.Conn},
		Comment:  &CommentModel{db.Conn},
	}
}
