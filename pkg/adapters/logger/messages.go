package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting pipeline":                            "パイプラインを開始します",
		"Topic %s: %d messages over %.2f s (%.2f fps)": "トピック %[1]s: %.2[3]f 秒間に %[2]d メッセージ (%.2[4]f fps)",
		"Reading images from %s":                       "%s から画像を読み込み中",
		"Buffered %d frames":                           "%d フレームをバッファしました",
		"No annotation table supplied":                 "アノテーション表が指定されていません",
		"Indexed %d boxes on %d frames":                "%d 個のボックスを %d フレームに割り当てました",
		"Drawing boxes on %d frames":                   "%d フレームにボックスを描画中",
		"Encoding %d frames at %.2f fps":               "%d フレームを %.2f fps でエンコード中",
		"Output saved to %s":                           "出力を %s に保存しました",
		"Pipeline completed successfully":              "パイプラインが正常に完了しました",

		// Metadata stage
		"Topic %s (%s) at %.2f Hz":                        "トピック %s (%s) %.2f Hz",
		"Resolved %s: %d messages over %.3f s (%.2f fps)": "%[1]s を解決: %.3[3]f 秒間に %[2]d メッセージ (%.2[4]f fps)",

		// Extract stage
		"Reading topic %s (compressed: %t)": "トピック %s を読み込み中 (圧縮: %t)",
		"Skipping message %d at %s: %v":     "メッセージ %d (%s) をスキップ: %v",
		"Buffered %d frames (%d skipped)":   "%d フレームをバッファ (%d 件スキップ)",

		// Annotation and index
		"Loaded %d boxes in %d groups from %s":  "%[3]s から %[1]d 個のボックス (%[2]d グループ) を読み込みました",
		"Published index: %d boxes on %d frames": "インデックスを公開: %d ボックス / %d フレーム",
		"Annotations cleared":                    "アノテーションをクリアしました",

		// Overlay stage
		"No boxes to draw":                          "描画するボックスはありません",
		"Drawing boxes on %d frames with %d workers": "%d フレームに %d ワーカーでボックスを描画中",
		"Overlay completed: %d frames annotated":     "描画完了: %d フレームにボックスを描画しました",

		// Encode stage
		"Encoding %d frames %dx%d at %.3f fps as %s": "%d フレーム (%dx%d) を %.3f fps の %s でエンコード中",
		"Wrote %s (%d bytes)":                        "%s を書き込みました (%d バイト)",

		// Warnings
		"Skipped %d undecodable messages":                      "デコードできない %d 件のメッセージをスキップしました",
		"Buffered %d frames but the summary lists %d messages": "%d フレームをバッファしましたが、サマリーには %d メッセージと記載されています",
		"Scaled %d frames to %dx%d":                            "%d フレームを %dx%d にリサイズしました",
		"Failed to save debug frame %d: %v":                    "デバッグフレーム %d の保存に失敗しました: %v",
		"%s encoder not available, falling back to %s":         "%s エンコーダーが利用できないため %s にフォールバックします",

		// Errors
		"Failed to read log summary: %s": "ログのサマリー読み込みに失敗しました: %s",
		"Failed to resolve metadata: %s": "メタデータの解決に失敗しました: %s",
		"Failed to read images: %s":      "画像の読み込みに失敗しました: %s",
		"No decodable images on %s":      "%s にデコード可能な画像がありません",
		"Failed to load annotations: %s": "アノテーションの読み込みに失敗しました: %s",
		"Failed to build frame index: %s": "フレームインデックスの構築に失敗しました: %s",
		"Failed to draw boxes: %s":       "ボックスの描画に失敗しました: %s",
		"Failed to encode video: %s":     "動画のエンコードに失敗しました: %s",
	})
}
