package service

// clampPage нормализует параметры пагинации: страница от 1,
// размер страницы от 1 до 100 (по умолчанию 20)
func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
