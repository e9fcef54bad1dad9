package service

import "errors"

// 核心错误分类：
// ErrInvalidInput —— 边界处拒绝（空搜索词、畸形记录、非法分值），不做部分处理；
// ErrNotFound     —— 按ID直查无此内容/评分，作为确定的否定结果返回，不重试。
// 提供方不可用与唯一键并发冲突在内部降级/消化，不会以错误形式抛给最终调用方。
var (
	ErrInvalidInput = errors.New("非法输入")
	ErrNotFound     = errors.New("记录不存在")
)
